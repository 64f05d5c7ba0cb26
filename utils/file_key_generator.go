package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FileKeyStrategy string

const (
	StrategyHashBased FileKeyStrategy = "hash_based"
	StrategyDateBased FileKeyStrategy = "date_based"
)

type FileKeyGenerator struct {
	strategy   FileKeyStrategy
	prefix     string
	maxNameLen int
}

func NewFileKeyGenerator(strategy FileKeyStrategy, prefix string) *FileKeyGenerator {
	return &FileKeyGenerator{
		strategy:   strategy,
		prefix:     prefix,
		maxNameLen: 50,
	}
}

func (fkg *FileKeyGenerator) GenerateFileKey(filename, ownerID string) string {
	switch fkg.strategy {
	case StrategyHashBased:
		return fkg.generateHashBasedKey(filename, ownerID)
	case StrategyDateBased:
		return fkg.generateDateBasedKey(filename)
	default:
		return fkg.generateTimestampUUIDKey(filename)
	}
}

// 时间戳 + UUID 策略（默认）
func (fkg *FileKeyGenerator) generateTimestampUUIDKey(filename string) string {
	timestamp := time.Now().Unix()
	uid := uuid.New().String()
	return fmt.Sprintf("%s/%d_%s_%s", fkg.prefix, timestamp, uid, fkg.cleanFilename(filename))
}

// 基于内容哈希的策略
func (fkg *FileKeyGenerator) generateHashBasedKey(filename, ownerID string) string {
	content := fmt.Sprintf("%s_%s_%d", filename, ownerID, time.Now().UnixNano())
	hash := md5.Sum([]byte(content))
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s/hash_%s%s", fkg.prefix, hex.EncodeToString(hash[:]), ext)
}

// 基于日期的分层存储策略
func (fkg *FileKeyGenerator) generateDateBasedKey(filename string) string {
	now := time.Now()
	uid := uuid.New().String()[:8]
	return fmt.Sprintf("%s/%s/%s_%s", fkg.prefix, now.Format("2006/01/02"), uid, fkg.cleanFilename(filename))
}

// 文件名清理
func (fkg *FileKeyGenerator) cleanFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	baseName := strings.TrimSuffix(filename, filepath.Ext(filename))

	name := strings.ReplaceAll(baseName, " ", "_")
	name = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`).ReplaceAllString(name, "_")
	name = regexp.MustCompile(`[_\-.]{2,}`).ReplaceAllString(name, "_")
	name = strings.Trim(name, "_-.")

	if len(name) > fkg.maxNameLen {
		name = name[:fkg.maxNameLen]
		// don't cut a multi-byte rune in half
		for len(name) > 0 && name[len(name)-1]&0xC0 == 0x80 {
			name = name[:len(name)-1]
		}
	}
	if name == "" || name == "_" {
		name = "document"
	}
	return name + ext
}
