package config

import "time"

// Version is the current version of rxss
const Version = "v1.0.0"

// Author is the author of the tool
const Author = "@Nishanath123"

// Default values
const (
	DefaultWorkers   = 15
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// SnippetRadius is the number of characters kept on each side of a
// reflected marker when extracting the classification window.
const SnippetRadius = 100
