package handler

const (
	// RootPath is the root path of the route group.
	RootPath = "/"

	// RouterRootPath is the relative root inside a route group.
	RouterRootPath = "/"
)
