package public

import (
	"time"

	"github.com/moment-next/internal/cache"
	"github.com/moment-next/internal/http/response"
	"github.com/moment-next/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取前台全局配置（站点信息 + 验证码开关）
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data := map[string]interface{}{
		"site_name":      h.Config.Site.Name,
		"frontend_url":   h.Config.Site.FrontendURL,
		"default_locale": h.Config.Site.DefaultLocale,
		"languages":      []string{"zh-CN", "zh-TW", "en-US"},
	}

	if h.CaptchaService != nil {
		captchaSetting, err := h.CaptchaService.GetPublicSetting()
		if err != nil {
			respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
			return
		}
		data["captcha"] = captchaSetting
	}

	if err := cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL); err != nil {
		logger.Warnw("public_config_cache_set_failed", "error", err)
	}
	response.Success(c, data)
}
