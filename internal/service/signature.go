package service

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// 签名图片必须是 data-URL 编码的位图，解码后至少 minSignatureBytes 字节。
// 客户端会拒绝空白画布，这里在服务端再校验一次。
const minSignatureBytes = 128

// decodeSignature 解析 data-URL 形式的签名图片，返回解码后的图片字节。
// 格式要求：data:image/<type>;base64,<payload>，子类型不能为空
func decodeSignature(sig string) ([]byte, error) {
	const prefix = "data:image/"
	if !strings.HasPrefix(sig, prefix) {
		return nil, fmt.Errorf("signature is not an image data URL")
	}
	idx := strings.Index(sig, ";base64,")
	if idx < 0 {
		return nil, fmt.Errorf("signature is not base64 encoded")
	}
	if idx <= len(prefix) {
		return nil, fmt.Errorf("signature media type has no image subtype")
	}
	raw, err := base64.StdEncoding.DecodeString(sig[idx+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature payload: %w", err)
	}
	return raw, nil
}

// validateSignature 校验签名负载非空且不小于最小尺寸。
func validateSignature(sig string) error {
	raw, err := decodeSignature(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if len(raw) < minSignatureBytes {
		return fmt.Errorf("%w: signature payload too small", ErrValidationFailed)
	}
	return nil
}
