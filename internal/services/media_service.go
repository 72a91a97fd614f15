package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/farellandr/eventpass/internal/apperrors"
)

// MediaService manages the public gallery photos and the home page banner.
type MediaService struct {
	galleryDir string
	bannerDir  string
	log        zerolog.Logger
}

func NewMediaService(galleryDir, bannerDir string, log zerolog.Logger) *MediaService {
	return &MediaService{
		galleryDir: galleryDir,
		bannerDir:  bannerDir,
		log:        log.With().Str("component", "media").Logger(),
	}
}

func (s *MediaService) GalleryDir() string { return s.galleryDir }

func (s *MediaService) BannerDir() string { return s.bannerDir }

// GalleryPhotos returns the gallery file names in name order.
func (s *MediaService) GalleryPhotos() ([]string, error) {
	entries, err := listFiles(s.galleryDir)
	if err != nil {
		return nil, fmt.Errorf("%w: list gallery: %w", apperrors.ErrStorage, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *MediaService) DeleteGalleryPhoto(filename string) error {
	if err := checkFilename(filename); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.galleryDir, filename)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: gallery photo %s", apperrors.ErrNotFound, filename)
		}
		return fmt.Errorf("%w: delete gallery photo: %w", apperrors.ErrStorage, err)
	}
	s.log.Info().Str("filename", filename).Msg("gallery photo deleted")
	return nil
}

// LatestBanner returns the most recently written banner, or "" when there is none.
func (s *MediaService) LatestBanner() (string, error) {
	entries, err := listFiles(s.bannerDir)
	if err != nil {
		return "", fmt.Errorf("%w: list banners: %w", apperrors.ErrStorage, err)
	}

	var latest string
	var latestInfo fs.FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latestInfo == nil || info.ModTime().After(latestInfo.ModTime()) ||
			(info.ModTime().Equal(latestInfo.ModTime()) && entry.Name() > latest) {
			latest, latestInfo = entry.Name(), info
		}
	}
	return latest, nil
}

// ReplaceBanner removes every banner except keep, which must already be saved
// in the banner directory.
func (s *MediaService) ReplaceBanner(keep string) error {
	entries, err := listFiles(s.bannerDir)
	if err != nil {
		return fmt.Errorf("%w: list banners: %w", apperrors.ErrStorage, err)
	}
	keep = filepath.Base(keep)
	for _, entry := range entries {
		if entry.Name() == keep {
			continue
		}
		if err := os.Remove(filepath.Join(s.bannerDir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: remove old banner: %w", apperrors.ErrStorage, err)
		}
	}
	s.log.Info().Str("filename", keep).Msg("banner replaced")
	return nil
}

func (s *MediaService) DeleteBanner() error {
	latest, err := s.LatestBanner()
	if err != nil {
		return err
	}
	if latest == "" {
		return fmt.Errorf("%w: no banner to delete", apperrors.ErrNotFound)
	}
	if err := os.Remove(filepath.Join(s.bannerDir, latest)); err != nil {
		return fmt.Errorf("%w: delete banner: %w", apperrors.ErrStorage, err)
	}
	s.log.Info().Str("filename", latest).Msg("banner deleted")
	return nil
}

// listFiles returns the visible regular files in dir; a missing dir is empty.
func listFiles(dir string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	files := entries[:0]
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			files = append(files, entry)
		}
	}
	return files, nil
}

func checkFilename(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid file name %q", apperrors.ErrValidation, name)
	}
	return nil
}
