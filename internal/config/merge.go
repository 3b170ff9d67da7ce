package config

import "github.com/bianoble/ghmirror/internal/match"

// MergeDefaults fills the unset fields of p from d. Project values win;
// a project that sets asset_patterns replaces the default list entirely.
func MergeDefaults(d Defaults, p Project) Project {
	out := p

	if out.Kind == "" {
		out.Kind = KindRelease
	}

	if len(out.AssetPatterns) == 0 {
		switch {
		case len(d.AssetPatterns) > 0:
			out.AssetPatterns = append([]string(nil), d.AssetPatterns...)
		default:
			out.AssetPatterns = append([]string(nil), match.DefaultPatterns...)
		}
	}

	if out.IncludePrerelease == nil && d.IncludePrerelease != nil {
		v := *d.IncludePrerelease
		out.IncludePrerelease = &v
	}

	return out
}
