package services

import (
	"context"
	"fmt"
	"log/slog"

	"sidevault/internal/domain"
)

// ShareService emails a saved page to a recipient.
type ShareService struct {
	pages    domain.PageService
	renderer domain.EmailTemplateRenderer
	mailer   domain.Mailer
	logger   *slog.Logger
}

// NewShareService creates a ShareService over the given page collection and
// mail ports.
func NewShareService(pages domain.PageService, renderer domain.EmailTemplateRenderer, mailer domain.Mailer, logger *slog.Logger) *ShareService {
	return &ShareService{
		pages:    pages,
		renderer: renderer,
		mailer:   mailer,
		logger:   logger,
	}
}

// SharePage renders the share-page email for the given page and sends it to
// the recipient. Returns domain.ErrNotFound if the page id is absent.
func (s *ShareService) SharePage(ctx context.Context, pageID, to string) error {
	page, ok := s.pages.Get(pageID)
	if !ok {
		return domain.ErrNotFound
	}
	data := &domain.SharePageEmailData{
		Title:       page.Title,
		URL:         page.URL,
		Description: page.Description,
		Domain:      page.Domain,
	}
	subject, html, text, err := s.renderer.Render("share_page", data)
	if err != nil {
		return fmt.Errorf("failed to render share email: %w", err)
	}
	if err := s.mailer.Send(to, subject, html, text); err != nil {
		return fmt.Errorf("failed to send share email: %w", err)
	}
	s.logger.Info("page shared", "page_id", pageID, "to", to)
	return nil
}
