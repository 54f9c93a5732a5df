package clicks

import (
	"strings"

	"linkfolio-platform/internal/model"
)

// 设备识别子串，全部按小写匹配
var (
	mobileMarkers = []string{"mobile", "android", "iphone", "ipad", "ipod", "blackberry", "windows phone"}
	tabletMarkers = []string{"tablet", "ipad"}
)

// DetectDevice 根据 User-Agent 粗分设备类型。
// 平板子串只在命中移动端子串之后才参与判定，
// 避免桌面浏览器 UA 中的无关片段被误判为平板。
func DetectDevice(userAgent string) string {
	if userAgent == "" {
		return model.DeviceUnknown
	}
	ua := strings.ToLower(userAgent)
	if containsAny(ua, mobileMarkers) {
		if containsAny(ua, tabletMarkers) {
			return model.DeviceTablet
		}
		return model.DeviceMobile
	}
	return model.DeviceDesktop
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
