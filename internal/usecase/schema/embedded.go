package schema

import (
	_ "embed"

	"github.com/aalvaropc/docmapr/internal/domain"
)

var (
	//go:embed schemas/notification.json
	notificationJSON []byte
	//go:embed schemas/link_headers.json
	linkHeadersJSON []byte
	//go:embed schemas/docmaps.json
	docMapsJSON []byte
)

var (
	Notification = MustNew[domain.Notification]("notification", notificationJSON)
	LinkHeaders  = MustNew[domain.LinkHeaders]("headers", linkHeadersJSON)
	DocMaps      = MustNew[[]domain.DocMap]("docmaps", docMapsJSON)
)
