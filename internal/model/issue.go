package model

import "time"

// IssueRequest is the GitHub create-issue payload
type IssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// Issue is the subset of a GitHub issue the relay reads back
type Issue struct {
	Number      int       `json:"number"`
	HTMLURL     string    `json:"html_url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

// IssueRef is the issue reference returned to the submitter
type IssueRef struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}
