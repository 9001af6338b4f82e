// Package main provides localization for the framereader CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration":    "設定",
		"Logging":          "ログ",
		"Frames":           "フレーム範囲",
		"Decoding":         "デコード",
		"Output":           "出力先",
		"Layout and Style": "レイアウトとスタイル",

		// Root command
		"Frame-accurate video frame reader": "フレーム単位で正確な動画フレームリーダー",
		"framereader decodes exact frames from video files, writes them as images and renders contact sheets.": "framereaderは動画ファイルから正確なフレームをデコードし、画像として書き出し、コンタクトシートを作成します。",
		"Error: %s": "エラー: %s",

		// Global flags
		"Path to a YAML configuration file":    "YAML設定ファイルのパス",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "すべてのログ出力を抑制",

		// Frame and decode flags
		"First frame to read (1-based)":                  "読み込む最初のフレーム（1始まり）",
		"Last frame to read (default: last frame)":       "読み込む最後のフレーム（デフォルト: 最終フレーム）",
		"Read every Nth frame":                           "Nフレームごとに読み込む",
		"Clamp out-of-range frames to the nearest frame": "範囲外のフレームを最も近いフレームに丸める",
		"Times a stalled decode is retried":              "停滞したデコードの再試行回数",

		// Info command
		"Show stream information of a video file":                "動画ファイルのストリーム情報を表示",
		"Write the summary to a Markdown file instead of stdout": "標準出力の代わりにMarkdownファイルへサマリーを書き出す",

		// Extract command
		"Write frames of a video file as images":                     "動画ファイルのフレームを画像として書き出す",
		"Directory for extracted frames":                             "抽出したフレームの出力ディレクトリ",
		"File name pattern; the extension selects PNG, JPEG or TIFF": "ファイル名パターン（拡張子でPNG、JPEG、TIFFを選択）",
		"Extracting": "抽出中",

		// Sheet command
		"Render a contact sheet of a video file":      "動画ファイルのコンタクトシートを作成",
		"Output image path":                           "出力画像のパス",
		"Number of columns":                           "カラム数",
		"Thumbnail width in pixels":                   "サムネイルの幅（ピクセル）",
		"Print the frame number under each thumbnail": "各サムネイルの下にフレーム番号を表示",
		"Background color (hex, e.g., #1a1a2e)":       "背景色（16進数、例: #1a1a2e）",
		"Use faster, lower quality scaling":           "高速だが低品質な縮小を使用",
		"Rendering": "描画中",

		// Summary report
		"Media Summary":       "メディアサマリー",
		"Generated":           "生成日時",
		"File":                "ファイル",
		"Item":                "項目",
		"Value":               "値",
		"Path":                "パス",
		"File Size":           "ファイルサイズ",
		"Status":              "状態",
		"Invalid":             "無効",
		"Video Stream":        "動画ストリーム",
		"Codec":               "コーデック",
		"Resolution":          "解像度",
		"Pixel Aspect":        "ピクセルアスペクト比",
		"Frame Rate":          "フレームレート",
		"Frame Count":         "フレーム数",
		"Duration":            "長さ",
		"Bit Depth":           "ビット深度",
		"Components":          "コンポーネント数",
		"Colorspace":          "色空間",
		"Settings":            "設定値",
		"Max Decode Threads":  "最大デコードスレッド数",
		"Max Retries":         "最大再試行回数",
		"Load Nearest":        "最も近いフレームを読み込む",
		"Colorspace Override": "色空間の上書き",
		"Yes":                 "はい",
		"No":                  "いいえ",
		"None":                "なし",
		"Generated by":        "生成元",
	})
}
