//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

import (
	"fmt"
	"strings"
)

// DebugInfo is a point-in-time snapshot of a node's name, type and status,
// recursively including children for composites. It is safe to take while the
// node is running.
type DebugInfo struct {
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Status   Status       `json:"status"`
	Children []*DebugInfo `json:"children,omitempty"`
}

// RenderDebugInfo renders the snapshot as an indented tree, one node per
// line, each child prefixed with "-> " at its depth:
//
//	mac(Machine) -- RUNNING
//	  -> s1(WaitState) -- RUNNING
func RenderDebugInfo(info *DebugInfo) string {
	var b strings.Builder
	renderDebugNode(&b, info, 0)
	return b.String()
}

func renderDebugNode(b *strings.Builder, info *DebugInfo, depth int) {
	if depth > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("-> ")
	}
	fmt.Fprintf(b, "%s(%s) -- %s", info.Name, info.Type, info.Status)
	for _, child := range info.Children {
		renderDebugNode(b, child, depth+1)
	}
}
