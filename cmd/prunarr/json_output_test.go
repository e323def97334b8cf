package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestWriteJSONKeepsPathCharacters(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := writeJSON(cmd, map[string]string{"path": "/m/Tom & Jerry <2021>"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	want := "{\n  \"path\": \"/m/Tom & Jerry <2021>\"\n}\n"
	if got := buf.String(); got != want {
		t.Fatalf("writeJSON output = %q, want %q", got, want)
	}
	if strings.Contains(buf.String(), `\u0026`) {
		t.Fatal("expected unescaped ampersand")
	}
}
