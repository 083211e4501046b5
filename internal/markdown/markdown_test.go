// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		exact    string
	}{
		{name: "empty", input: "", exact: ""},
		{name: "whitespace only", input: "  \n\t", exact: ""},
		{name: "paragraph", input: "Hello world", exact: "<p>Hello world</p>"},
		{name: "emphasis", input: "Some **bold** text", contains: []string{"<strong>bold</strong>"}},
		{name: "heading gets id", input: "## Spring Looks", contains: []string{`<h2 id="spring-looks">Spring Looks</h2>`}},
		{name: "raw html passes through", input: `<div class="promo">x</div>`, contains: []string{`<div class="promo">x</div>`}},
		{name: "gfm strikethrough", input: "~~old~~", contains: []string{"<del>old</del>"}},
		{name: "gfm table", input: "| a | b |\n|---|---|\n| 1 | 2 |", contains: []string{"<table>", "<td>1</td>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.input)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if tt.contains == nil && got != tt.exact {
				t.Errorf("ToHTML(%q) = %q, want %q", tt.input, got, tt.exact)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML(%q) = %q, missing %q", tt.input, got, want)
				}
			}
		})
	}
}
