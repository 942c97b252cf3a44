// Package appfs embeds the files the binaries need at run time: SQL migrations, email templates & assets.
package appfs

import "embed"

//go:embed migrations/*.sql templates/email/* assets/*
var FS embed.FS
