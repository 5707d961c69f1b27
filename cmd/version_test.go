package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	if !strings.HasPrefix(out, "faceauth "+Version+"\n") {
		t.Errorf("expected release line, got %q", out)
	}
	if !strings.Contains(out, "commit "+CommitSHA) {
		t.Errorf("expected commit in output, got %q", out)
	}
}
