package ddbsdk

// We encourage you to implement IsValid for every entity struct.
// It is called when a put is built, so an invalid entity never reaches dynamo.
type DynamoEntity interface {
	IsValid() error
}
