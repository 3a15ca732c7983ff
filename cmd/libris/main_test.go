package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"libris/internal/books"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	help := buf.String()
	for _, name := range []string{"search", "summarize", "listen", "cache", "config"} {
		if !strings.Contains(help, name) {
			t.Errorf("help output missing %q", name)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), target) {
		t.Errorf("output should name the target path: %s", buf.String())
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	first := newRootCommand()
	first.SetOut(new(bytes.Buffer))
	first.SetArgs([]string{"config", "init", "--path", target})
	if err := first.Execute(); err != nil {
		t.Fatal(err)
	}

	second := newRootCommand()
	second.SetOut(new(bytes.Buffer))
	second.SetErr(new(bytes.Buffer))
	second.SetArgs([]string{"config", "init", "--path", target})
	if err := second.Execute(); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	initCmd := newRootCommand()
	initCmd.SetOut(new(bytes.Buffer))
	initCmd.SetArgs([]string{"config", "init", "--path", target})
	if err := initCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	showCmd := newRootCommand()
	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	showCmd.SetErr(&buf)
	showCmd.SetArgs([]string{"config", "show", "--config", target})
	if err := showCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	output := buf.String()
	if !strings.Contains(output, "[search]") {
		t.Errorf("show output missing sections: %s", output)
	}
	if strings.Contains(output, "hf_") {
		t.Error("show output leaked a token value")
	}
}

func TestPublishYearTruncates(t *testing.T) {
	year := publishYear(books.Book{PublishedDate: "1897-05-26"})
	if year != "1897" {
		t.Errorf("publishYear = %q", year)
	}
}
