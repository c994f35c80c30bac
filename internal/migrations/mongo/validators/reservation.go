package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"thing_id",
			"booker_name",
			"starts_at",
			"ends_at",
			"cancel_token",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"thing_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"booker_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			// Nullable for legacy rows imported without an email.
			"booker_email": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"starts_at": bson.M{
				"bsonType": "date",
			},

			"ends_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_at": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"cancel_token": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"reminder_opt_in": bson.M{
				"bsonType": "bool",
			},

			"reminder_note": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"reminder_sent_at": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
