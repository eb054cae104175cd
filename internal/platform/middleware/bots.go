// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/metrics"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
)

// blockedAgents are lowercase substrings of scripted HTTP clients.
var blockedAgents = []string{
	"curl",
	"wget",
	"python-requests",
	"scrapy",
	"axios",
	"go-http-client",
	"java/",
	"libwww-perl",
	"httpclient",
	"okhttp",
	"postman",
}

// IsBotUserAgent reports whether the User-Agent is empty or matches the deny-list.
func IsBotUserAgent(userAgent string) bool {
	agent := strings.ToLower(strings.TrimSpace(userAgent))
	if agent == "" {
		return true
	}
	for _, blocked := range blockedAgents {
		if strings.Contains(agent, blocked) {
			return true
		}
	}
	return false
}

// BlockBots rejects scripted clients with 403 when enabled.
func BlockBots(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if IsBotUserAgent(request.UserAgent()) {
				metrics.BotRequestsBlocked.Inc()
				ctxutil.GetLogger(request.Context()).Warn("bot_request_blocked",
					"user_agent", request.UserAgent(),
				)
				respond.Error(writer, request, apperr.Forbidden("Access denied"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
