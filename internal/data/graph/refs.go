package graph

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	slugCleanRe   = regexp.MustCompile(`[^a-z0-9]+`)
	refSuffixRe   = regexp.MustCompile(`^(.*)-([0-9]{3,})$`)
	nonAlphaNumUp = regexp.MustCompile(`[^A-Z0-9]+`)
)

// Slugify lowercases and hyphenates a display name: "User Needs" ->
// "user-needs".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugCleanRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DocumentShortCode falls back to the uppercased slug with hyphens
// stripped when no explicit short code was set.
func DocumentShortCode(slug, shortCode string) string {
	if sc := strings.TrimSpace(shortCode); sc != "" {
		return sc
	}
	return nonAlphaNumUp.ReplaceAllString(strings.ToUpper(slug), "")
}

// SectionShortCode falls back to the uppercased section name with
// whitespace stripped.
func SectionShortCode(name, shortCode string) string {
	if sc := strings.TrimSpace(shortCode); sc != "" {
		return sc
	}
	return nonAlphaNumUp.ReplaceAllString(strings.ToUpper(strings.TrimSpace(name)), "")
}

// ProjectPrefix is the ref prefix for requirements attached directly to
// a project: REQ-<PROJECTSLUG uppercased, hyphens removed>.
func ProjectPrefix(projectSlug string) string {
	return "REQ-" + nonAlphaNumUp.ReplaceAllString(strings.ToUpper(projectSlug), "")
}

// RefPrefix composes the allocation prefix for a requirement's context.
func RefPrefix(projectSlug, docSlug, docShortCode, sectionName, sectionShortCode string) string {
	if docSlug == "" {
		return ProjectPrefix(projectSlug)
	}
	doc := DocumentShortCode(docSlug, docShortCode)
	if sectionName == "" && sectionShortCode == "" {
		return doc
	}
	return doc + "-" + SectionShortCode(sectionName, sectionShortCode)
}

func ComposeRef(prefix string, n int) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// SplitRef strips the trailing numeric segment of a ref. ok is false
// when the ref has no -NNN suffix (at least three digits).
func SplitRef(ref string) (prefix string, n int, ok bool) {
	m := refSuffixRe.FindStringSubmatch(ref)
	if m == nil {
		return ref, 0, false
	}
	num, err := strconv.Atoi(m[2])
	if err != nil {
		return ref, 0, false
	}
	return m[1], num, true
}

// MaxRefSuffix scans refs that share a prefix and returns the highest
// numeric suffix, 0 when none match.
func MaxRefSuffix(prefix string, refs []string) int {
	max := 0
	for _, ref := range refs {
		p, n, ok := SplitRef(ref)
		if !ok || p != prefix {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

func RequirementID(tenant, project, ref string) string {
	return tenant + ":" + project + ":" + ref
}

func RequirementPath(tenant, project, ref string) string {
	return tenant + "/" + project + "/requirements/" + ref + ".md"
}

// BaselineRef composes BL-<PROJECTUPPER>-NNN.
func BaselineRef(projectSlug string, n int) string {
	return fmt.Sprintf("BL-%s-%03d", nonAlphaNumUp.ReplaceAllString(strings.ToUpper(projectSlug), ""), n)
}
