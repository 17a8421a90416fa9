package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterCourses(t *testing.T) {
	courses := []Course{
		{ID: 1, Title: "Advanced React Patterns", Category: "Web Development", MentorName: "Ravi Kumar"},
		{ID: 2, Title: "Swift Basics", Description: "Build iOS apps", Category: "Mobile Development", MentorName: "Meera Shah"},
		{ID: 3, Title: "Pandas Basics", Description: "Python programming for analysts", Category: "Data Science", MentorName: "Ravi Kumar"},
		{ID: 4, Title: "Go Fundamentals", Description: "Learn programming with Go"},
	}

	tests := []struct {
		name     string
		search   string
		category string
		expected []int
	}{
		{name: "no filters", expected: []int{1, 2, 3, 4}},
		{name: "title substring ignores case", search: "  REACT ", expected: []int{1}},
		{name: "mentor name", search: "ravi", expected: []int{1, 3}},
		{name: "description", search: "ios", expected: []int{2}},
		{name: "category column only", category: "Data Science", expected: []int{3}},
		{name: "category in description", category: "programming", expected: []int{3, 4}},
		{name: "category ignores mentor", category: "meera", expected: []int{}},
		{name: "all category", category: "All", expected: []int{1, 2, 3, 4}},
		{name: "both filters", search: "ravi", category: "web", expected: []int{1}},
		{name: "no match", search: "kotlin", expected: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := FilterCourses(courses, tt.search, tt.category)

			ids := make([]int, 0, len(filtered))
			for _, c := range filtered {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestFilterCourses_NilInput(t *testing.T) {
	filtered := FilterCourses(nil, "go", "")

	assert.NotNil(t, filtered)
	assert.Empty(t, filtered)
}
