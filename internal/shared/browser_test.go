package shared

import (
	"errors"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	orig := getRuntime
	defer func() { getRuntime = orig }()

	tt := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "cmd"},
		{goos: "plan9", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.goos, func(t *testing.T) {
			getRuntime = func() string { return tc.goos }
			cmd, err := browserCommand("http://127.0.0.1:5000")
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Args[0] != tc.want {
				t.Errorf("expected %s, got %s", tc.want, cmd.Args[0])
			}
		})
	}
}
