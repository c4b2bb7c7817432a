package handler

import (
	"context"
	"errors"
	"image"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	imagecaptioner "github.com/menta2k/image-captioner"
	"github.com/menta2k/image-captioner/internal/utils"
	"github.com/menta2k/image-captioner/pkg/caption"
	"github.com/menta2k/image-captioner/pkg/types"
)

// Error messages returned to clients
const (
	msgNoImage      = "لم يتم إرسال صورة"
	msgNoFile       = "لم يتم اختيار ملف"
	msgNoURL        = "لم يتم إرسال رابط URL"
	msgProcessImage = "خطأ في معالجة الصورة: "

	englishNotLoaded = "Model not loaded"
	englishFailed    = "Error generating English description: "
	arabicNotLoaded  = "النموذج غير محمل"
	arabicFailed     = "خطأ في توليد الوصف العربي: "
)

// Describer produces both descriptions for an image
type Describer interface {
	Describe(ctx context.Context, img image.Image) imagecaptioner.Result
	Loaded() bool
	Backend() string
	ModelName() string
}

// ImageSource decodes uploaded or remote images into RGB
type ImageSource interface {
	LoadImageFromReader(r io.Reader) (image.Image, error)
	LoadImageFromURL(ctx context.Context, url string) (image.Image, error)
}

type Handler struct {
	describer Describer
	images    ImageSource
	log       *zap.Logger
}

func NewHandler(describer Describer, images ImageSource, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		describer: describer,
		images:    images,
		log:       log,
	}
}

type describeURLRequest struct {
	URL *string `json:"url"`
}

// DescribeImage handles multipart uploads in the "image" field
func (h *Handler) DescribeImage(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.log.Debug("Request is not a multipart form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoImage})
		return
	}

	files := form.File["image"]
	if len(files) == 0 {
		// a part named "image" without a filename is parsed as a plain value
		if _, ok := form.Value["image"]; ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoImage})
		return
	}

	file := files[0]
	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.log.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgProcessImage + err.Error()})
		return
	}
	defer f.Close()

	img, err := h.images.LoadImageFromReader(f)
	if err != nil {
		h.log.Warn("Failed to decode uploaded image",
			zap.String("filename", utils.SanitizeFilename(file.Filename)),
			zap.String("size", utils.FormatFileSize(file.Size)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgProcessImage + err.Error()})
		return
	}

	h.log.Info("Describing uploaded image",
		zap.String("filename", utils.SanitizeFilename(file.Filename)),
		zap.String("size", utils.FormatFileSize(file.Size)))

	h.respond(c, img)
}

// DescribeImageURL handles JSON bodies of the form {"url": "..."}
func (h *Handler) DescribeImageURL(c *gin.Context) {
	var req describeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoURL})
		return
	}

	img, err := h.images.LoadImageFromURL(c.Request.Context(), *req.URL)
	if err != nil {
		h.log.Warn("Failed to load image from URL", zap.String("url", *req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgProcessImage + err.Error()})
		return
	}

	h.log.Info("Describing image from URL", zap.String("url", *req.URL))

	h.respond(c, img)
}

func (h *Handler) respond(c *gin.Context, img image.Image) {
	res := h.describer.Describe(c.Request.Context(), img)
	if res.EnglishErr != nil {
		h.log.Warn("English description failed", zap.Error(res.EnglishErr))
	}
	if res.ArabicErr != nil {
		h.log.Warn("Arabic description failed", zap.Error(res.ArabicErr))
	}

	c.JSON(http.StatusOK, toDescription(res))
}

// toDescription renders a Result in the legacy wire format, where failures
// travel inside the text fields and success is always true
func toDescription(res imagecaptioner.Result) types.Description {
	return types.Description{
		English: renderText(res.English, res.EnglishErr, englishNotLoaded, englishFailed),
		Arabic:  renderText(res.Arabic, res.ArabicErr, arabicNotLoaded, arabicFailed),
		Success: true,
	}
}

func renderText(text string, err error, notLoaded, failedPrefix string) string {
	switch {
	case err == nil:
		return text
	case errors.Is(err, caption.ErrModelNotLoaded):
		return notLoaded
	case errors.Is(err, caption.ErrEmptyCaption):
		return ""
	default:
		return failedPrefix + err.Error()
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": h.describer.Loaded(),
		"backend":      h.describer.Backend(),
		"model":        h.describer.ModelName(),
	})
}

func (h *Handler) GetUI(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"model_loaded": h.describer.Loaded(),
		"version":      imagecaptioner.GetVersion(),
	})
}
