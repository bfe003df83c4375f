package main

import (
	"fmt"
	"strconv"
	"strings"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/spf13/cobra"
)

// paramFlags holds the image parameters shared by sign, url and create.
type paramFlags struct {
	title    string
	template string
	path     string
	iat      string
	claims   []string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&p.title, "title", "", "Image title (required)")
	f.StringVar(&p.template, "template", "", "Template name")
	f.StringVar(&p.path, "path", "", "Page path the image belongs to")
	f.StringVar(&p.iat, "iat", "", "Issued-at as Unix seconds, milliseconds or RFC 3339 (default: unset)")
	f.StringArrayVar(&p.claims, "claim", nil, "Extra claim as key=value (repeatable)")
}

// build returns the request parameters and options. Integer and boolean
// claim values are converted; everything else stays a string.
func (p *paramFlags) build() (ogimage.Params, ogimage.CreateOptions, error) {
	params := ogimage.Params{}
	for _, kv := range p.claims {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, ogimage.CreateOptions{}, fmt.Errorf("invalid --claim %q (want key=value)", kv)
		}
		params[k] = claimValue(v)
	}
	if p.title != "" {
		params[ogimage.ClaimTitle] = p.title
	}
	if p.template != "" {
		params[ogimage.ClaimTemplate] = p.template
	}
	if p.path != "" {
		params[ogimage.ClaimPath] = p.path
	}

	var opts ogimage.CreateOptions
	if p.iat != "" {
		if n, err := strconv.ParseInt(p.iat, 10, 64); err == nil {
			opts.IssuedAt = n
		} else {
			opts.IssuedAt = p.iat
		}
	}
	return params, opts, nil
}

func claimValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
