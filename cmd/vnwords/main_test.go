package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		stdin    string
		wantOut  string
		wantCode int
		wantErr  string
	}{
		{
			name:    "arguments",
			args:    []string{"1500000", "-50", "105"},
			wantOut: "Một triệu năm trăm nghìn đồng\nÂm năm mươi đồng\nMột trăm lẻ năm đồng\n",
		},
		{
			name:     "bad argument does not stop the rest",
			args:     []string{"abc", "0"},
			wantOut:  "Không đồng\n",
			wantCode: 1,
			wantErr:  "vnwords: abc:",
		},
		{
			name:    "stdin",
			stdin:   "21\n\n1000\n",
			wantOut: "Hai mươi mốt đồng\nMột nghìn đồng\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(tt.args, strings.NewReader(tt.stdin), &out, &errOut)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if out.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", out.String(), tt.wantOut)
			}
			if tt.wantErr != "" && !strings.Contains(errOut.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", errOut.String(), tt.wantErr)
			}
		})
	}
}
