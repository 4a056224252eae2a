package cache

import (
	"fmt"
	"net/url"

	"github.com/gofrs/uuid"
)

// Typed key builders, one per query shape. Free-form parameters are escaped
// before they enter a key so a search string containing ":" cannot collide
// with another shape's key.

const (
	allTasksKey        = "tasks:all"
	projectTasksPrefix = "tasks:project:"
	projectListPrefix  = "projects:list:"
	projectDetailPref  = "projects:detail:"
)

func KeyAllTasks() string {
	return allTasksKey
}

func KeyProjectTasks(projectID uuid.UUID) string {
	return projectTasksPrefix + projectID.String()
}

func KeyProjectList(status, search, sortBy, sortOrder string) string {
	return fmt.Sprintf("%s%s:%s:%s:%s",
		projectListPrefix,
		url.QueryEscape(status),
		url.QueryEscape(search),
		url.QueryEscape(sortBy),
		url.QueryEscape(sortOrder),
	)
}

func KeyProjectDetail(projectID uuid.UUID) string {
	return projectDetailPref + projectID.String()
}

// PatternProjectLists matches every filtered project listing key; project
// mutations sweep the whole namespace rather than enumerating filter tuples.
func PatternProjectLists() string {
	return projectListPrefix + "*"
}
