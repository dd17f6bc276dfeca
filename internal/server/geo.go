package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devroom/checkout/internal/checkout/domain"
)

// Geolocation headers set by the serving edge. Absent or "null" values mean
// the edge could not resolve the client.
const (
	headerGeoCountry    = "X-Vercel-IP-Country"
	headerGeoCity       = "X-Vercel-IP-City"
	headerGeoRegion     = "X-Vercel-IP-Country-Region"
	headerGeoPostalCode = "X-Vercel-IP-Postal-Code"
)

func geolocationFromHeaders(c *gin.Context) domain.GeolocationHint {
	return domain.GeolocationHint{
		Country:    geoHeader(c, headerGeoCountry),
		City:       geoHeader(c, headerGeoCity),
		Region:     geoHeader(c, headerGeoRegion),
		PostalCode: geoHeader(c, headerGeoPostalCode),
	}
}

func geoHeader(c *gin.Context, name string) string {
	v := strings.TrimSpace(c.GetHeader(name))
	// Some edges forward the literal string "null" for unresolved fields.
	if v == "" || strings.EqualFold(v, "null") {
		return ""
	}
	return v
}
