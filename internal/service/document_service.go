package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/storage"
)

type documentRepository interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	Create(ctx context.Context, d *models.Document) error
	Delete(ctx context.Context, id string) error
}

type documentStorage interface {
	Put(relPath string, r io.Reader) (storage.Object, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
}

type urlSigner interface {
	Generate(documentID, relPath string) (string, time.Time, error)
	Parse(token string) (storage.Grant, error)
}

// DocumentConfig bounds uploads and tells the service where downloads are served.
type DocumentConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	DownloadBaseURL  string
}

// Upload is a received file part.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DocumentService stores attachments and hands out signed download links.
type DocumentService struct {
	repo        documentRepository
	storage     documentStorage
	signer      urlSigner
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
	config      DocumentConfig
	clock       Clock
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(repo documentRepository, store documentStorage, signer urlSigner, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator, config DocumentConfig) *DocumentService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxFileSizeBytes <= 0 {
		config.MaxFileSizeBytes = 10 << 20
	}
	config.DownloadBaseURL = strings.TrimRight(config.DownloadBaseURL, "/")
	return &DocumentService{
		repo:        repo,
		storage:     store,
		signer:      signer,
		validator:   validate,
		logger:      logger,
		cache:       cache,
		invalidator: invalidator,
		config:      config,
	}
}

// List returns one page of documents, each with a fresh download link.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeDocuments, "list", filter), 0, func(ctx context.Context) (Page[models.Document], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.Document]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list documents")
	}
	for i := range page.Items {
		s.attachDownloadURL(&page.Items[i])
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// Get returns one document with a download link.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find document")
	}
	s.attachDownloadURL(doc)
	return doc, nil
}

// Upload stores file under documents/YYYY/MM/<uuid><ext> and records its metadata.
func (s *DocumentService) Upload(ctx context.Context, actor string, req dto.DocumentRequest, file Upload) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	if file.Body == nil || file.Size <= 0 {
		return nil, appErrors.Invalid("file", "required", "")
	}
	if file.Size > s.config.MaxFileSizeBytes {
		return nil, appErrors.Invalid("file", "max", humanSize(s.config.MaxFileSizeBytes))
	}
	mimeType := normalizeMIME(file.ContentType)
	if !s.mimeAllowed(mimeType) {
		return nil, appErrors.Invalid("file", "oneof", strings.Join(s.config.AllowedMIMEs, " "))
	}

	now := s.clock.now().UTC()
	id := uuid.NewString()
	relPath := fmt.Sprintf("documents/%04d/%02d/%s%s", now.Year(), int(now.Month()), id, strings.ToLower(filepath.Ext(file.Filename)))
	obj, err := s.storage.Put(relPath, io.LimitReader(file.Body, s.config.MaxFileSizeBytes+1))
	if err != nil {
		return nil, appErrors.Wrapf(appErrors.ErrInternal, err, "store document")
	}
	if obj.Size > s.config.MaxFileSizeBytes {
		s.discard(obj.Path)
		return nil, appErrors.Invalid("file", "max", humanSize(s.config.MaxFileSizeBytes))
	}

	doc := models.Document{
		ID:         id,
		Title:      strings.TrimSpace(req.Title),
		Category:   strings.TrimSpace(req.Category),
		FilePath:   obj.Path,
		FileURL:    obj.URL,
		MimeType:   mimeType,
		SizeBytes:  obj.Size,
		RelatedID:  optionalString(req.RelatedID),
		UploadedBy: actorRef(actor),
		UploadedAt: now,
	}
	if err := s.repo.Create(ctx, &doc); err != nil {
		s.discard(obj.Path)
		return nil, appErrors.Store(err, "create document")
	}
	s.invalidator.After(ctx, MutationDocumentSave)
	s.attachDownloadURL(&doc)
	return &doc, nil
}

// Delete removes the record, then the stored file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return appErrors.Store(err, "find document")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Store(err, "delete document")
	}
	s.discard(doc.FilePath)
	s.invalidator.After(ctx, MutationDocumentDelete)
	return nil
}

// Open resolves a signed download token to its document and file handle.
// The caller closes the file.
func (s *DocumentService) Open(ctx context.Context, token string) (*models.Document, *os.File, error) {
	grant, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidToken) {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrForbidden)
		}
		return nil, nil, appErrors.Wrapf(appErrors.ErrInternal, err, "parse download token")
	}
	doc, err := s.repo.FindByID(ctx, grant.DocumentID)
	if err != nil {
		return nil, nil, appErrors.Store(err, "find document")
	}
	if doc.FilePath != grant.Path {
		return nil, nil, appErrors.ErrForbidden
	}
	file, err := s.storage.Open(doc.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound)
		}
		return nil, nil, appErrors.Wrapf(appErrors.ErrInternal, err, "open document")
	}
	return doc, file, nil
}

func (s *DocumentService) attachDownloadURL(doc *models.Document) {
	if s.signer == nil || doc == nil {
		return
	}
	token, _, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		s.logger.Warn("sign download url failed", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}
	doc.DownloadURL = s.config.DownloadBaseURL + "/" + token
}

func (s *DocumentService) discard(relPath string) {
	if err := s.storage.Delete(relPath); err != nil {
		s.logger.Warn("remove stored document failed", zap.String("path", relPath), zap.Error(err))
	}
}

func (s *DocumentService) mimeAllowed(mimeType string) bool {
	if len(s.config.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}

func normalizeMIME(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func humanSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%dB", n)
}
