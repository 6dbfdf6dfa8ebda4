package model

// TopicID identifies a topic in the static catalog
type TopicID int

// Topic groups rooms by subject
type Topic struct {
	ID   TopicID
	Name string
}

// TopicRoomCount is the number of active rooms under a topic
type TopicRoomCount struct {
	Topic Topic
	Count int
}
