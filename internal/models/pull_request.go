package models

// PullRequestResult is produced once per successful story and never mutated.
type PullRequestResult struct {
	URL        string `json:"url"`
	BranchName string `json:"branchName"`
	BaseBranch string `json:"baseBranch"`
}

// RepositoryInfo describes one repository accessible to the authenticated user.
type RepositoryInfo struct {
	FullName    string `json:"full_name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
}

// UserProfile is the hosting provider's view of the authenticated user.
type UserProfile struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
