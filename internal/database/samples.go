package database

import (
	"context"
	"fmt"
	"time"

	"magnet-search-web/internal/models"
)

const samplePieceLength = 262144

type sample struct {
	name  string
	files []models.TorrentFile
	age   time.Duration
}

var samples = []sample{
	{"Ubuntu 22.04 Desktop (64bit)", []models.TorrentFile{{Path: "ubuntu-22.04-desktop-amd64.iso", Length: 3_500_000_000}}, 24 * time.Hour},
	{"Debian 11 (64bit)", []models.TorrentFile{{Path: "debian-11-amd64-DVD-1.iso", Length: 2_800_000_000}}, 48 * time.Hour},
	{"Big Buck Bunny 4K", []models.TorrentFile{{Path: "bbb_sunflower_2160p_60fps.mp4", Length: 750_000_000}}, 72 * time.Hour},
	{"Blender 3.4.1 Windows 64bit", []models.TorrentFile{
		{Path: "blender-3.4.1-windows-x64.msi", Length: 240_000_000},
		{Path: "README.txt", Length: 4_000},
		{Path: "LICENSE.txt", Length: 20_000},
		{Path: "release-notes.html", Length: 96_000},
		{Path: "checksums.sha256", Length: 1_000},
	}, 96 * time.Hour},
	{"GIMP 2.10.32 for Linux", []models.TorrentFile{
		{Path: "gimp-2.10.32.tar.bz2", Length: 124_000_000},
		{Path: "gimp-2.10.32.tar.bz2.sig", Length: 1_000},
		{Path: "NEWS", Length: 120_000},
	}, 120 * time.Hour},
}

// sampleTorrent 根据示例构造种子记录，infohash 由 info 字典计算得出
func sampleTorrent(s sample, now time.Time) (*models.TorrentSummary, error) {
	info := map[string]interface{}{
		"name":         s.name,
		"piece length": samplePieceLength,
	}

	var total int64
	if len(s.files) == 1 {
		total = s.files[0].Length
		info["length"] = total
	} else {
		files := make([]interface{}, 0, len(s.files))
		for _, f := range s.files {
			total += f.Length
			files = append(files, map[string]interface{}{
				"length": f.Length,
				"path":   []interface{}{f.Path},
			})
		}
		info["files"] = files
	}

	infoHash, err := InfoHash(info)
	if err != nil {
		return nil, fmt.Errorf("计算infohash失败: %v", err)
	}

	return &models.TorrentSummary{
		Name:       s.name,
		InfoHash:   infoHash,
		FileCount:  len(s.files),
		TotalSize:  total,
		CreateDate: now.Add(-s.age).UTC().Truncate(time.Second),
		Files:      s.files,
	}, nil
}

// SeedSamples 集合为空时写入示例数据，返回写入条数
func SeedSamples(ctx context.Context, db *DB) (int, error) {
	count, err := CountTorrents(ctx, db)
	if err != nil {
		return 0, err
	}

	// 如果已有数据，跳过
	if count > 0 {
		log.Infof("数据库中已有 %d 条记录，跳过示例数据", count)
		return 0, nil
	}

	now := time.Now()
	for _, s := range samples {
		torrent, err := sampleTorrent(s, now)
		if err != nil {
			return 0, err
		}
		if err := AddTorrent(ctx, db, torrent); err != nil {
			return 0, err
		}
	}

	log.Infof("已成功添加 %d 条示例数据", len(samples))
	return len(samples), nil
}
