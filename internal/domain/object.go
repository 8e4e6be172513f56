package domain

import "time"

// ProductFamily identifies which of the two GOES product families an object
// belongs to.
type ProductFamily string

const (
	ProductImagery   ProductFamily = "imagery"   // ABI-L2-CMIPF
	ProductLightning ProductFamily = "lightning" // GLM-L2-LCFA
)

// Prefix returns the product's top-level key prefix in the bucket.
func (p ProductFamily) Prefix() string {
	if p == ProductLightning {
		return "GLM-L2-LCFA"
	}
	return "ABI-L2-CMIPF"
}

// RemoteObject is one listed object in the remote store. Immutable; produced
// by the catalog client from a listing entry plus the parsed key stamps.
type RemoteObject struct {
	Key     string        `json:"key"`
	Product ProductFamily `json:"product"`
	Scan    time.Time     `json:"scan"`    // scan start stamp (_s)
	End     time.Time     `json:"end"`     // scan end stamp (_e)
	Created time.Time     `json:"created"` // file creation stamp (_c)
	Size    int64         `json:"size"`
}

// CachedBlob is a locally persisted copy of a remote object. Created on first
// successful download, never mutated afterwards.
type CachedBlob struct {
	Key    string `json:"key"`
	Path   string `json:"path"`
	Length int64  `json:"length"`
}
