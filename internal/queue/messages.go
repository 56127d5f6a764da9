package queue

// DocumentIngestMsg asks the worker to extract, chunk and scan an
// uploaded document.
type DocumentIngestMsg struct {
	OwnerID    int64 `json:"owner_id"`
	DocumentID int64 `json:"document_id"`
}

// ArticleIngestMsg asks the worker to fetch, chunk and scan a news
// article by its stored URL.
type ArticleIngestMsg struct {
	OwnerID   int64 `json:"owner_id"`
	ArticleID int64 `json:"article_id"`
}
