package types

// DirectoryMapping is the default two-directory substitution rule, plus the
// most recent relink pair kept for reuse. All fields are optional.
type DirectoryMapping struct {
	OldDirectory    *string `json:"old_directory,omitempty" yaml:"old_directory,omitempty" mapstructure:"old_directory"`
	NewDirectory    *string `json:"new_directory,omitempty" yaml:"new_directory,omitempty" mapstructure:"new_directory"`
	LastPattern     *string `json:"last_pattern,omitempty" yaml:"last_pattern,omitempty" mapstructure:"last_pattern"`
	LastReplacement *string `json:"last_replacement,omitempty" yaml:"last_replacement,omitempty" mapstructure:"last_replacement"`
}

// HasOld reports whether OldDirectory is set to a non-empty value.
func (m DirectoryMapping) HasOld() bool {
	return m.OldDirectory != nil && *m.OldDirectory != ""
}

// HasNew reports whether NewDirectory is set to a non-empty value.
func (m DirectoryMapping) HasNew() bool {
	return m.NewDirectory != nil && *m.NewDirectory != ""
}

// WithDirectories returns a copy of m with the non-empty arguments applied.
func (m DirectoryMapping) WithDirectories(oldDir, newDir string) DirectoryMapping {
	if oldDir != "" {
		m.OldDirectory = &oldDir
	}
	if newDir != "" {
		m.NewDirectory = &newDir
	}
	return m
}

// WithLastRelink returns a copy of m recording pattern and replacement as
// the most recent relink pair.
func (m DirectoryMapping) WithLastRelink(pattern, replacement string) DirectoryMapping {
	m.LastPattern = &pattern
	m.LastReplacement = &replacement
	return m
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
