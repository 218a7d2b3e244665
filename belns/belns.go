// Package belns writes BEL namespace (.belns) files.
package belns

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"time"
)

// DomainOther is the domain of namespaces that are not biological processes,
// chemicals or anatomy.
const DomainOther = "Other"

// Header describes the namespace section of a .belns file.
type Header struct {
	Name     string
	Keyword  string
	Domain   string
	Version  string
	QueryURL string

	AuthorName      string
	AuthorCopyright string
	AuthorContact   string
	CitationName    string

	// Functions are the BEL encoding letters applied to every value; "A" (abundance) if empty.
	Functions string
	Created   time.Time
}

// Write writes the header and the sorted, de-duplicated values to w.
func Write(w io.Writer, h Header, values []string) error {
	if h.Keyword == "" {
		return fmt.Errorf("belns: keyword is required")
	}
	if h.Domain == "" {
		h.Domain = DomainOther
	}
	if h.Functions == "" {
		h.Functions = "A"
	}
	if h.Created.IsZero() {
		h.Created = time.Now()
	}
	if h.Version == "" {
		h.Version = h.Created.Format("20060102")
	}
	if h.AuthorCopyright == "" {
		h.AuthorCopyright = "Other/Proprietary"
	}

	bw := bufio.NewWriter(w)
	section := func(name string, pairs ...string) {
		fmt.Fprintf(bw, "[%s]\n", name)
		for i := 0; i+1 < len(pairs); i += 2 {
			fmt.Fprintf(bw, "%s=%s\n", pairs[i], pairs[i+1])
		}
		bw.WriteString("\n")
	}

	section("Namespace",
		"Keyword", h.Keyword,
		"NameString", h.Name,
		"DomainString", h.Domain,
		"VersionString", h.Version,
		"CreatedDateTime", h.Created.Format(time.RFC3339),
		"QueryValueURL", h.QueryURL,
	)
	section("Author",
		"NameString", h.AuthorName,
		"CopyrightString", h.AuthorCopyright,
		"ContactInfoString", h.AuthorContact,
	)
	section("Citation", "NameString", h.CitationName)
	section("Processing",
		"CaseSensitiveFlag", "yes",
		"DelimiterString", "|",
		"CacheableFlag", "yes",
	)

	bw.WriteString("[Values]\n")
	for _, v := range uniqueSorted(values) {
		fmt.Fprintf(bw, "%s|%s\n", v, h.Functions)
	}
	return bw.Flush()
}

func uniqueSorted(values []string) []string {
	set := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
