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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/blnkfinance/sieve/api/middleware"
	"github.com/blnkfinance/sieve/config"
	"github.com/blnkfinance/sieve/database"
	"github.com/blnkfinance/sieve/profile"
)

type Api struct {
	catalog *profile.Catalog
	source  database.IDataSource
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.GET("/resources", a.ListResources)
	router.GET("/resources/:name", a.GetResource)
	router.GET("/resources/:name/filters", a.GetResourceFilters)
	return a.router
}

// NewAPI wires the middleware stack around a router serving catalog listings
// from source.
func NewAPI(catalog *profile.Catalog, source database.IDataSource) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.New()
	service := conf.ProjectName
	if service == "" {
		service = "sieve"
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(), otelgin.Middleware(service))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware(conf))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{catalog: catalog, source: source, router: r}
}
