package frontier

import jsoniter "github.com/json-iterator/go"

// urlInfoCodec is the (de)serializer used for SCHED values. Grounded
// in the corpus's aistore, which reaches for json-iterator over
// encoding/json wherever it marshals hot-path records; the frontier's
// SCHED value is written and read once per dispatch, the same
// profile.
var urlInfoCodec = jsoniter.ConfigCompatibleWithStandardLibrary

func serializeURLInfo(info *URLInfo) ([]byte, error) {
	return urlInfoCodec.Marshal(info)
}

func deserializeURLInfo(data []byte) (*URLInfo, error) {
	var info URLInfo
	if err := urlInfoCodec.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
