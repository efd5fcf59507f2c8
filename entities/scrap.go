package entities

// Scrap is a threaded discussion fetched from Zenn: a title and an ordered
// forest of comments, in the order the platform delivers them.
type Scrap struct {
	Title    string    `json:"title"`
	Comments []Comment `json:"comments"`
}

// Comment is one message in a scrap's reply tree. Children holds the direct
// replies; the tree is owned top-down and depth is unbounded.
type Comment struct {
	Author    string    `json:"author"`
	CreatedAt string    `json:"created_at"`
	Body      string    `json:"body_markdown"`
	Children  []Comment `json:"children"`
}
