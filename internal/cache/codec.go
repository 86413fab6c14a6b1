package cache

import (
	"bytes"
	"reflect"

	"go.mongodb.org/mongo-driver/v2/bson"

	"kbmetrics/pkg/errors"
)

// Values are wrapped in a one-field document since BSON has no top-level
// arrays or scalars.
const envelopeField = "v"

func encode(value any) ([]byte, error) {
	return bson.Marshal(bson.D{{Key: envelopeField, Value: value}})
}

// decode mirrors the store client's decoding rules (embedded documents as
// bson.M, ObjectIDs as hex), so a hit yields what the query returned.
func decode(data []byte, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Wrapf(errors.ErrInvalidInput, "cache destination must be a non-nil pointer, got %T", dest)
	}

	envelope := reflect.New(reflect.StructOf([]reflect.StructField{{
		Name: "V",
		Type: rv.Elem().Type(),
		Tag:  reflect.StructTag(`bson:"` + envelopeField + `"`),
	}}))

	dec := bson.NewDecoder(bson.NewDocumentReader(bytes.NewReader(data)))
	dec.DefaultDocumentM()
	dec.ObjectIDAsHexString()
	if err := dec.Decode(envelope.Interface()); err != nil {
		return err
	}

	rv.Elem().Set(envelope.Elem().Field(0))
	return nil
}
