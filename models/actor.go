package models

import "time"

// ActorRef is the opaque staff identity attached to every transition.
// Authentication happens upstream; we only record who acted.
type ActorRef struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
	Role string `bson:"role" json:"role"`
}

// ActionStamp records which actor performed a lifecycle action and when.
type ActionStamp struct {
	Actor ActorRef  `bson:"actor" json:"actor"`
	At    time.Time `bson:"at" json:"at"`
}
