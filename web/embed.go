// Package web holds the dashboard assets compiled into the server binary.
package web

import "embed"

// TemplatesFS holds the server-rendered dashboard pages.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the script driving the live preview,
// chart and websocket refresh.
//
//go:embed static/*
var StaticFS embed.FS
