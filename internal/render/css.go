// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"greetcards/internal/validate"
)

// Style values come from user documents and end up in style attributes as
// template.CSS, so every value is checked against a strict pattern first.
// Anything that does not match is dropped.
var (
	lengthRe   = regexp.MustCompile(`^\d{1,4}(\.\d{1,3})?(px|rem|em|%|vw|vh)$`)
	numberRe   = regexp.MustCompile(`^\d{1,2}(\.\d{1,3})?$`)
	weightRe   = regexp.MustCompile(`^(normal|bold|bolder|lighter|[1-9]00)$`)
	fontRe     = regexp.MustCompile(`^[A-Za-z0-9 ,'-]{1,80}$`)
	classRe    = regexp.MustCompile(`^[a-z0-9-]{1,40}$`)
	// One gradient whose arguments may only nest color functions.
	gradientRe = regexp.MustCompile(`^(repeating-)?(linear|radial|conic)-gradient\((?:[A-Za-z0-9#%., -]|(?:rgba?|hsla?)\([0-9A-Za-z%., /-]*\))+\)$`)
)

const maxGradientLen = 300

var textAligns = map[string]bool{"left": true, "right": true, "center": true, "justify": true}

var borderStyles = map[string]bool{
	"solid": true, "dashed": true, "dotted": true, "double": true,
	"groove": true, "ridge": true, "inset": true, "outset": true,
}

// cssBuilder collects checked declarations.
type cssBuilder struct {
	b strings.Builder
}

func (c *cssBuilder) add(prop, value string) {
	fmt.Fprintf(&c.b, "%s: %s; ", prop, value)
}

func (c *cssBuilder) color(prop, v string) {
	if v != "" && validate.Color(v) {
		c.add(prop, v)
	}
}

func (c *cssBuilder) match(prop, v string, re *regexp.Regexp) {
	if v != "" && re.MatchString(v) {
		c.add(prop, v)
	}
}

func (c *cssBuilder) css() template.CSS {
	return template.CSS(strings.TrimSpace(c.b.String()))
}

// className returns v if it is a plain CSS class name, else "".
func className(v string) string {
	if classRe.MatchString(v) {
		return v
	}
	return ""
}

// safeBackground returns v when it is a solid color or a plain gradient.
func safeBackground(v string) (string, bool) {
	if validate.Color(v) || (len(v) <= maxGradientLen && gradientRe.MatchString(v)) {
		return v, true
	}
	return "", false
}

func validateColor(v string) bool {
	return v != "" && validate.Color(v)
}
