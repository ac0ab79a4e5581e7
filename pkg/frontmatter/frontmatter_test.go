package frontmatter

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   *Frontmatter
		wantBody string
		wantErr  bool
	}{
		{
			name: "valid frontmatter",
			content: `---
id: 01-intro
title: Introduction to SDD
sidebar_label: Introduction
slug: /
tags: [intro, basics]
---

# Introduction

This is the body.`,
			wantFM: &Frontmatter{
				ID:           "01-intro",
				Title:        "Introduction to SDD",
				SidebarLabel: "Introduction",
				Slug:         "/",
				Keywords:     []string{},
				Tags:         []string{"intro", "basics"},
			},
			wantBody: "\n# Introduction\n\nThis is the body.",
			wantErr:  false,
		},
		{
			name:     "no frontmatter",
			content:  "# Just a title\n\nSome content.",
			wantFM:   nil,
			wantBody: "# Just a title\n\nSome content.",
			wantErr:  false,
		},
		{
			name: "invalid yaml",
			content: `---
id: test
title: [invalid
---

Body`,
			wantFM: nil,
			wantBody: `---
id: test
title: [invalid
---

Body`,
			wantErr: true,
		},
		{
			name:    "frontmatter without body",
			content: "---\ntitle: Quiz\ndraft: true\n---",
			wantFM: &Frontmatter{
				Title:    "Quiz",
				Keywords: []string{},
				Tags:     []string{},
				Draft:    true,
			},
			wantBody: "",
			wantErr:  false,
		},
		{
			name:    "windows line endings",
			content: "---\r\ntitle: Windows\r\n---\r\nBody",
			wantFM: &Frontmatter{
				Title:    "Windows",
				Keywords: []string{},
				Tags:     []string{},
			},
			wantBody: "Body",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFM, gotBody, err := Parse(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(gotFM, tt.wantFM) {
				t.Errorf("Parse() gotFM = %+v, want %+v", gotFM, tt.wantFM)
			}
			if gotBody != tt.wantBody {
				t.Errorf("Parse() gotBody = %q, want %q", gotBody, tt.wantBody)
			}
		})
	}
}
