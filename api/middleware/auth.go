/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/sieve/config"
	"github.com/blnkfinance/sieve/internal/apierror"
)

const (
	KeyHeader = "X-Sieve-Key"
)

// SecretKeyAuthMiddleware requires the configured secret key in the
// X-Sieve-Key header on every route except the root health check.
//
// Responses:
// - 401 Unauthorized: When the key is missing or does not match.
// - 500 Internal Server Error: When secure mode is on but no key is configured.
func SecretKeyAuthMiddleware(conf *config.Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip auth for root path
		if c.Request.URL.Path == "/" {
			c.Next()
			return
		}

		secretKey := conf.Server.SecretKey
		if secretKey == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.APIError{Code: apierror.ErrInternalServer, Message: "Secret key is not configured"})
			return
		}

		clientSecret := c.GetHeader(KeyHeader)
		if clientSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.APIError{Code: apierror.ErrUnauthorized, Message: "Authentication required. Use " + KeyHeader + " header"})
			return
		}

		if !secureCompare(secretKey, clientSecret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.APIError{Code: apierror.ErrUnauthorized, Message: "Invalid secret key"})
			return
		}

		c.Next()
	}
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
