package models

import "strings"

// FilterCourses keeps the courses whose title, mentor name or description
// contains search, and whose category, title or description contains
// category. Matching ignores case, and empty or "all" disables a filter.
func FilterCourses(courses []Course, search, category string) []Course {
	search = strings.ToLower(strings.TrimSpace(search))
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "all" {
		category = ""
	}

	filtered := make([]Course, 0, len(courses))
	for _, course := range courses {
		if search != "" && !containsFold(search, course.Title, course.MentorName, course.Description) {
			continue
		}
		if category != "" && !containsFold(category, course.Category, course.Title, course.Description) {
			continue
		}
		filtered = append(filtered, course)
	}

	return filtered
}

// containsFold reports whether any field contains the lower-cased needle
func containsFold(needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
