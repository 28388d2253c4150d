package validators

import "go.mongodb.org/mongo-driver/bson"

var ConsultantValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_user_id",
			"name",
			"hourly_rate",
			"currency",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"avatar_url": bson.M{
				"bsonType": "string",
			},

			"headline": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"hourly_rate": bson.M{
				"bsonType": []string{"double", "decimal", "int", "long"},
				"minimum":  0,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
