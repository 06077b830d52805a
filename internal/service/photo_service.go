package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lutyjj/photkey-server/internal/config"
	"github.com/lutyjj/photkey-server/internal/domain"
	"github.com/lutyjj/photkey-server/internal/geo"
	"github.com/lutyjj/photkey-server/internal/meta"
	"github.com/lutyjj/photkey-server/internal/repository"
	"github.com/lutyjj/photkey-server/internal/storage"
)

type PhotoService interface {
	SavePhoto(ctx context.Context, data []byte, filename string) (*domain.Photo, error)
	Photos(ctx context.Context) ([]domain.Photo, error)
	PhotoByID(ctx context.Context, id int64) (*domain.Photo, error)
	PhotoByName(ctx context.Context, name string) (*domain.Photo, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	PhotosByPlace(ctx context.Context, place string) ([]domain.Photo, error)
	PhotosByDate(ctx context.Context, date string) ([]domain.Photo, error)
	PhotoSrcByID(ctx context.Context, id int64) ([]byte, error)
	PhotoSrcByName(ctx context.Context, name string) ([]byte, error)
}

type photoService struct {
	repo    repository.PhotoRepository
	content storage.ContentStore
	geo     geo.Resolver
	meta    *meta.Reader
	cfg     *config.Config
	log     *zap.Logger
}

func NewPhotoService(repo repository.PhotoRepository, content storage.ContentStore,
	resolver geo.Resolver, cfg *config.Config, log *zap.Logger) PhotoService {
	return &photoService{
		repo:    repo,
		content: content,
		geo:     resolver,
		meta:    meta.NewReader(),
		cfg:     cfg,
		log:     log,
	}
}

// SavePhoto ingests one photo: extracts capture metadata, resolves the
// place for GPS-tagged photos, then persists the record and the bytes.
// The record is written first so a duplicate name never leaves an
// orphaned file behind.
func (s *photoService) SavePhoto(ctx context.Context, data []byte, filename string) (*domain.Photo, error) {
	m, err := s.meta.Read(data)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if m.TakenAt != nil {
		date = *m.TakenAt
	}

	var resolved string
	if m.GPS != nil {
		resolved, err = s.geo.Resolve(ctx, m.GPS.Lat, m.GPS.Lon)
		if err != nil {
			return nil, err
		}
	}

	photo := &domain.Photo{
		Date:      date,
		Name:      filename,
		Place:     resolved,
		LocalPath: storage.PathFor(s.cfg.App.UploadDir, s.cfg.App.DatePattern, date),
	}

	if err := s.repo.Create(ctx, photo); err != nil {
		return nil, err
	}

	if err := s.content.Save(ctx, photo.LocalPath, photo.Name, data); err != nil {
		// Запись в БД уже есть; файл не записан. Компенсации нет,
		// как и в исходной версии.
		s.log.Error("Photo record saved but content write failed",
			zap.String("name", photo.Name),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store photo content: %w", err)
	}

	s.log.Info("Photo saved",
		zap.Int64("id", photo.ID),
		zap.String("name", photo.Name),
		zap.String("place", photo.Place),
		zap.Time("date", photo.Date))

	return photo, nil
}

func (s *photoService) Photos(ctx context.Context) ([]domain.Photo, error) {
	return s.repo.All(ctx)
}

func (s *photoService) PhotoByID(ctx context.Context, id int64) (*domain.Photo, error) {
	return s.repo.ByID(ctx, id)
}

func (s *photoService) PhotoByName(ctx context.Context, name string) (*domain.Photo, error) {
	return s.repo.ByName(ctx, name)
}

func (s *photoService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, name)
}

func (s *photoService) PhotosByPlace(ctx context.Context, place string) ([]domain.Photo, error) {
	return s.repo.ByPlace(ctx, place)
}

// PhotosByDate returns photos captured on the given calendar date,
// parsed with the configured date pattern.
func (s *photoService) PhotosByDate(ctx context.Context, date string) ([]domain.Photo, error) {
	// Окно фильтра живёт в той же зоне, в которой форматируются
	// даты съёмки и каталоги хранения.
	start, err := time.ParseInLocation(s.cfg.App.DatePattern, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadDate, err)
	}
	return s.repo.ByDateRange(ctx, start, start.AddDate(0, 0, 1))
}

func (s *photoService) PhotoSrcByID(ctx context.Context, id int64) ([]byte, error) {
	photo, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.content.Open(ctx, photo.LocalPath, photo.Name)
}

func (s *photoService) PhotoSrcByName(ctx context.Context, name string) ([]byte, error) {
	photo, err := s.repo.ByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.content.Open(ctx, photo.LocalPath, photo.Name)
}
