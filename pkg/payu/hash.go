// Package payu 实现 PayU India 网关的对账核心：
// 签名摘要、回传通知管线、渠道策略与远端核验。
package payu

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Fields 参与摘要计算的有序字段集合。
// 缺失的键一律按空字符串处理，不存在 null 语义，
// 否则无法和远端网关的摘要逐字节一致。
type Fields map[string]string

// Get 取字段值，缺失时返回空字符串
func (f Fields) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}

// 出站摘要的字段顺序：key|txnid|amount|productinfo|firstname|email|udf1..5||||||salt
// 入站反向摘要把同一串字段倒序，并在最前面放 salt、最后面放 key，
// status 紧跟 salt。additional_charges 非空时出站在尾部追加、入站在头部前置。
const verifyCommand = "verify_payment"

// SubmissionHash 计算提交远端网关时携带的摘要
func SubmissionHash(key, salt string, f Fields) string {
	parts := []string{
		key,
		f.Get("txnid"),
		f.Get("amount"),
		f.Get("productinfo"),
		f.Get("firstname"),
		f.Get("email"),
		f.Get("udf1"),
		f.Get("udf2"),
		f.Get("udf3"),
		f.Get("udf4"),
		f.Get("udf5"),
		"", "", "", "", "",
		salt,
	}

	payload := strings.Join(parts, "|")
	if ac := f.Get("additional_charges"); ac != "" {
		payload = payload + "|" + ac
	}

	return lowerSha512(payload)
}

// ReverseHash 按远端回传的字段重算反向摘要。
// 真实未被篡改的通知，重算结果必然等于报文携带的 hash 字段；
// 任何不一致都说明报文被改动或密钥/盐配置漂移，必须中止处理。
func ReverseHash(key, salt string, f Fields) string {
	parts := []string{
		salt,
		f.Get("status"),
		"", "", "", "", "",
		f.Get("udf5"),
		f.Get("udf4"),
		f.Get("udf3"),
		f.Get("udf2"),
		f.Get("udf1"),
		f.Get("email"),
		f.Get("firstname"),
		f.Get("productinfo"),
		f.Get("amount"),
		f.Get("txnid"),
		key,
	}

	payload := strings.Join(parts, "|")
	if ac := f.Get("additional_charges"); ac != "" {
		payload = ac + "|" + payload
	}

	return lowerSha512(payload)
}

// VerifyRequestHash 出站核验请求的签名：sha512(key|verify_payment|txnid|salt)
func VerifyRequestHash(key, salt, txnid string) string {
	return lowerSha512(key + "|" + verifyCommand + "|" + txnid + "|" + salt)
}

func lowerSha512(payload string) string {
	sum := sha512.Sum512([]byte(payload))
	// 协议要求小写十六进制
	return strings.ToLower(hex.EncodeToString(sum[:]))
}
