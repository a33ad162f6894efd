package database

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// InfoHash 计算 info 字典的 infohash：bencode 编码后取 SHA-1
func InfoHash(info map[string]interface{}) (string, error) {
	var buffer bytes.Buffer
	if err := writeBencodedDict(&buffer, info); err != nil {
		return "", err
	}

	sum := sha1.Sum(buffer.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// 将bencode字典写入io.Writer，键按字典序排列
func writeBencodedDict(writer io.Writer, dict map[string]interface{}) error {
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if _, err := io.WriteString(writer, "d"); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeBencodedString(writer, k); err != nil {
			return err
		}
		if err := writeBencodedValue(writer, dict[k]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(writer, "e")
	return err
}

// 字符串: <长度>:<内容>
func writeBencodedString(writer io.Writer, s string) error {
	_, err := io.WriteString(writer, strconv.Itoa(len(s))+":"+s)
	return err
}

// 写入bencode值
func writeBencodedValue(writer io.Writer, value interface{}) error {
	switch v := value.(type) {
	case string:
		return writeBencodedString(writer, v)
	case int:
		_, err := io.WriteString(writer, "i"+strconv.Itoa(v)+"e")
		return err
	case int64:
		_, err := io.WriteString(writer, "i"+strconv.FormatInt(v, 10)+"e")
		return err
	case []interface{}:
		if _, err := io.WriteString(writer, "l"); err != nil {
			return err
		}
		for _, item := range v {
			if err := writeBencodedValue(writer, item); err != nil {
				return err
			}
		}
		_, err := io.WriteString(writer, "e")
		return err
	case map[string]interface{}:
		return writeBencodedDict(writer, v)
	default:
		return fmt.Errorf("不支持的类型: %T", v)
	}
}
