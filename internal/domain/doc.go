// Package domain contains the core domain model for docmapr.
//
// The domain is transport-agnostic: it does not depend on net/http, JSON
// Schema, or the filesystem. Infra/adapters map into/from these types.
package domain
