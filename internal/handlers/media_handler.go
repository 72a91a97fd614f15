package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/helpers"
)

const (
	UploadTypeGallery = "gallery"
	UploadTypeBanner  = "banner"
)

func ListMedia(c *gin.Context) {
	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	photos, err := svc.Media.GalleryPhotos()
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load gallery.")
		return
	}
	banner, err := svc.Media.LatestBanner()
	if err != nil {
		helpers.RespondWithAppError(c, err, "Failed to load banner.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gallery": galleryURLs(photos),
		"banner":  bannerURL(banner),
	})
}

// UploadMedia saves gallery photos or replaces the banner. Files that are not
// images are skipped.
func UploadMedia(c *gin.Context) {
	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	uploadType := c.PostForm("upload_type")
	var dir string
	switch uploadType {
	case UploadTypeGallery:
		dir = svc.Media.GalleryDir()
	case UploadTypeBanner:
		dir = svc.Media.BannerDir()
	default:
		helpers.RespondWithError(c, http.StatusBadRequest, "upload_type must be gallery or banner")
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["photos"]) == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "photos are required")
		return
	}

	var saved []string
	skipped := 0
	for _, fileHeader := range form.File["photos"] {
		path, err := helpers.UploadFile(c, fileHeader, helpers.DefaultImageUploadConfig.In(dir))
		if errors.Is(err, apperrors.ErrValidation) {
			skipped++
			continue
		}
		if err != nil {
			helpers.RespondWithAppError(c, err, "Failed to save photos.")
			return
		}
		saved = append(saved, filepath.Base(path))
		if uploadType == UploadTypeBanner {
			break
		}
	}

	if len(saved) == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "No valid image was uploaded.")
		return
	}

	if uploadType == UploadTypeBanner {
		if err := svc.Media.ReplaceBanner(saved[0]); err != nil {
			helpers.RespondWithAppError(c, err, "Failed to replace banner.")
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Photos uploaded successfully.",
		"uploaded": saved,
		"skipped":  skipped,
	})
}

func DeleteGalleryPhoto(c *gin.Context) {
	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	filename := c.Param("filename")
	if err := svc.Media.DeleteGalleryPhoto(filename); err != nil {
		helpers.RespondWithAppError(c, err, "Failed to delete photo.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo " + filename + " deleted successfully."})
}

func DeleteBanner(c *gin.Context) {
	svc, ok := servicesFrom(c)
	if !ok {
		return
	}

	if err := svc.Media.DeleteBanner(); err != nil {
		helpers.RespondWithAppError(c, err, "Failed to delete banner.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Banner deleted successfully."})
}
