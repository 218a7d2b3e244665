package mitab

import "strings"

// Missing is the placeholder of an empty MITAB field.
const Missing = "-"

// Values splits a multi-valued field on '|' and drops empty and missing values.
func Values(field string) []string {
	if field == "" || field == Missing {
		return nil
	}
	var out []string
	for _, v := range strings.Split(field, "|") {
		v = strings.TrimSpace(v)
		if v == "" || v == Missing {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SplitID splits `db:identifier(description)` into its database and bare identifier.
func SplitID(value string) (db, id string) {
	value = strings.TrimSpace(value)
	i := strings.Index(value, ":")
	if i < 0 {
		return "", strings.Trim(value, `"`)
	}
	db = strings.ToLower(strings.TrimSpace(value[:i]))
	id = value[i+1:]
	if j := strings.Index(id, "("); j >= 0 {
		id = id[:j]
	}
	return db, strings.Trim(strings.TrimSpace(id), `"`)
}

// FirstID returns the first identifier in field whose database is one of dbs, in the order of dbs.
func FirstID(field string, dbs ...string) string {
	values := Values(field)
	for _, want := range dbs {
		for _, v := range values {
			db, id := SplitID(v)
			if db == want && id != "" {
				return id
			}
		}
	}
	return ""
}

// PubMedIDs returns the distinct PubMed identifiers of a publication field, in order.
func PubMedIDs(field string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range Values(field) {
		db, id := SplitID(v)
		if db != "pubmed" || id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// FirstLabel returns the first value of a multi-valued interaction type field.
func FirstLabel(field string) string {
	values := Values(field)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
