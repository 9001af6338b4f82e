package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Command level messages (info)
		"Summary saved to %s":                    "サマリーを %s に保存しました",
		"Extracted %d frames to %s":              "%d フレームを %s に書き出しました",
		"Contact sheet of %d frames saved to %s": "%d フレームのコンタクトシートを %s に保存しました",
		"Failed to write summary: %s":            "サマリーの書き込みに失敗しました: %s",
		"Interrupted, shutting down...":          "中断されました。シャットダウン中...",
		"ffmpeg unavailable, H.264 and HEVC streams will be skipped: %s": "ffmpegが利用できないため、H.264とHEVCのストリームはスキップされます: %s",

		// File discovery (reader component)
		"Invalid file: %s": "無効なファイル: %s",
		"Skipping stream %d: codec %q is not allowed":     "ストリーム %d をスキップ: コーデック %q は許可されていません",
		"Skipping stream %d: no decoder for %q":           "ストリーム %d をスキップ: %q のデコーダーがありません",
		"Skipping stream %d: unknown pixel format %q":     "ストリーム %d をスキップ: 不明なピクセル形式 %q",
		"Stream %d: %dx%d, %s fps, %d frames, start %d":   "ストリーム %d: %dx%d, %s fps, %d フレーム, 開始 %d",
		"Stream %d: no frame count in metadata, scanning": "ストリーム %d: メタデータにフレーム数がないため走査します",
		"Stream %d: no start time found, assuming 0":      "ストリーム %d: 開始時刻が見つからないため 0 とみなします",
		"Stream %d: unable to seek to end: %s":            "ストリーム %d: 末尾へシークできません: %s",
		"Stream %d has no presentation timestamps, using decode timestamps": "ストリーム %d に表示タイムスタンプがないため、デコードタイムスタンプを使用します",

		// Frame decoding (reader component)
		"Seeking to frame %d":                                    "フレーム %d へシーク中",
		"Seek to frame %d landed on frame %d":                    "フレーム %d へのシークはフレーム %d に到達しました",
		"Seek to frame %d landed on a packet without timestamp":  "フレーム %d へのシークはタイムスタンプのないパケットに到達しました",
		"End of file before seek to frame %d landed":             "フレーム %d へのシーク完了前にファイル末尾に達しました",
		"Stream %d stalled after seek, retrying before frame %d": "ストリーム %d がシーク後に停滞しました。フレーム %d より前から再試行します",
		"Stream %d stalled at frame %d, %d retries left":         "ストリーム %d がフレーム %d で停滞しました（残り再試行 %d 回）",
		"Stream %d ended after %d frames, expected %d":           "ストリーム %d は %d フレームで終了しました（想定 %d）",
		"Decoding frame %d failed after %d seeks: %s":            "フレーム %d のデコードが %d 回のシーク後に失敗しました: %s",

		// Extract stage
		"Extracting %d frames from %s":           "%d フレームを %s から抽出中",
		"Extracted %d frames":                    "%d フレームを抽出しました",
		"Stream ended before frame %d, stopping": "フレーム %d の前にストリームが終了したため停止します",

		// Sheet stage
		"Sheet of %d frames: %dx%d canvas": "%d フレームのシート: %dx%d キャンバス",
		"Sheet completed":                  "シートが完了しました",
	})
}
