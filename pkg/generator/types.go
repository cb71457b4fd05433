package generator

const (
	// DefaultMimeType は応答にメディアタイプが含まれない場合の既定値です。
	DefaultMimeType = "image/png"
)

// ImagePart は生成サービスへ送る1枚分の画像ペイロードです。
type ImagePart struct {
	Data     []byte
	MimeType string
}

// ImageRequest は生成サービスへの1回分のリクエストです。
// Images の順序はそのまま送信順になります。
type ImageRequest struct {
	Model  string
	Prompt string
	Images []ImagePart
}

// ImageResponse は生成された画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}
