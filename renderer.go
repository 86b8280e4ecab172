package url2pdf

import "context"

// Renderer turns web pages into PDF documents through a Cluster.
type Renderer struct {
	cluster *Cluster
}

// NewRenderer creates a Renderer backed by c.
func NewRenderer(c *Cluster) *Renderer {
	return &Renderer{cluster: c}
}

// MakePDF queues url for printing and waits for the document.
// Nil options use the defaults.
func (r *Renderer) MakePDF(ctx context.Context, url string, pdf *PDFOptions, page *PageOptions) ([]byte, error) {
	return r.cluster.Submit(ctx, url, page, PrintPDF, pdf)
}
