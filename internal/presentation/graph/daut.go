package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/quiver/pkg/domain"
)

// PrePost stands for the hidden end of an initial or final arrow in daut.
const PrePost = "$"

var (
	dautID         = `(?:\w+|"(?:[^\\"]|\\.)*")`
	dautTransition = regexp.MustCompile(`^ *(` + dautID + `|\$)? *-> *(` + dautID + `|\$)? *(.*?)$`)
	dautContext    = regexp.MustCompile(`^ *context *= *(.*?) *$`)
)

// GenerateDaut writes the transitions as daut lines ("src -> dst label").
// Hidden endpoints are written as "$". A non-empty context adds the header line.
func GenerateDaut(snap *domain.Snapshot) string {
	return GenerateDautWithContext(snap, "")
}

// GenerateDautWithContext is GenerateDaut with a "context = ..." header.
func GenerateDautWithContext(snap *domain.Snapshot, context string) string {
	var sb strings.Builder
	if context != "" {
		sb.WriteString(fmt.Sprintf("context = %s\n", strconv.Quote(context)))
	}
	if snap == nil {
		return sb.String()
	}
	for _, t := range snap.Transitions {
		sb.WriteString(dautEndpoint(string(t.Source)))
		sb.WriteString(" -> ")
		sb.WriteString(dautEndpoint(string(t.Target)))
		if label := strings.TrimSpace(t.Label); label != "" {
			sb.WriteString(" ")
			sb.WriteString(label)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func dautEndpoint(id string) string {
	if _, ok := domain.IntID(id); ok {
		return id
	}
	return PrePost
}

// ParseDaut reads daut text into a snapshot.
// "$" endpoints become absent endpoints, which the graph repairs into markers
// on load. States are the integer ids mentioned, in numeric order.
// The context header, if any, is returned unquoted.
func ParseDaut(text string) (*domain.Snapshot, string, error) {
	snap := domain.NewSnapshot()
	context := ""
	seen := map[string]bool{}

	for n, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if m := dautContext.FindStringSubmatch(line); m != nil {
			context = unquote(m[1])
			continue
		}
		m := dautTransition.FindStringSubmatch(line)
		if m == nil {
			return nil, "", fmt.Errorf("line %d: not a daut transition: %q", n+1, line)
		}
		src, dst := dautState(m[1]), dautState(m[2])
		if src == "" && dst == "" {
			return nil, "", fmt.Errorf("line %d: transition has no endpoint", n+1)
		}
		for _, id := range []string{src, dst} {
			if id != "" && !seen[id] {
				seen[id] = true
				snap.States = append(snap.States, domain.StateRecord{ID: domain.ID(id)})
			}
		}
		snap.Transitions = append(snap.Transitions, domain.TransitionRecord{
			Source: domain.ID(src),
			Target: domain.ID(dst),
			Label:  strings.TrimSpace(m[3]),
		})
	}

	sort.SliceStable(snap.States, func(i, j int) bool {
		a, aok := domain.IntID(string(snap.States[i].ID))
		b, bok := domain.IntID(string(snap.States[j].ID))
		if aok && bok {
			return a < b
		}
		return aok && !bok
	})
	for _, s := range snap.States {
		if n, ok := domain.IntID(string(s.ID)); ok && n > snap.LastStateID {
			snap.LastStateID = n
		}
	}
	return snap, context, nil
}

func dautState(tok string) string {
	if tok == "" || tok == PrePost {
		return ""
	}
	return unquote(tok)
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}
