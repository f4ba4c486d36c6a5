package models

import "time"

type Review struct {
	ID         string    `bson:"_id" json:"id"`
	ProductID  string    `bson:"productId" json:"productId"`
	UserID     string    `bson:"userId,omitempty" json:"userId,omitempty"`
	Content    string    `bson:"content" json:"content"`
	Rating     int       `bson:"rating" json:"rating"`
	ReviewDate time.Time `bson:"reviewDate" json:"reviewDate"`
}
