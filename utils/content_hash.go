package utils

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"github.com/painfulChen/offercome-sub000/models"
)

// ContentHash is the natural key for durable upserts: a deterministic
// fingerprint of (content, metadata, fileName). Metadata is canonicalized
// through a string map so key order cannot change the hash. Per-access
// stats and the processedAt timestamp are excluded: re-uploading identical
// content must land on the same hash.
func ContentHash(content string, meta models.DocumentMetadata, fileName string) string {
	canon := map[string]interface{}{
		"category":     meta.Category,
		"tags":         meta.Tags,
		"source":       meta.Source,
		"student_id":   meta.StudentID,
		"module_id":    meta.ModuleID,
		"service_type": meta.ServiceType,
		"student_name": meta.StudentName,
		"module_name":  meta.ModuleName,
		"uploaded_by":  meta.UploadedBy,
	}
	metaJSON, _ := json.Marshal(canon)

	h := md5.New()
	h.Write([]byte(content))
	h.Write([]byte{0})
	h.Write(metaJSON)
	h.Write([]byte{0})
	h.Write([]byte(fileName))
	return hex.EncodeToString(h.Sum(nil))
}
