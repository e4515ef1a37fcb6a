package models

type Room struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Table struct {
	ID     int64  `json:"id"`
	RoomID int64  `json:"room_id"`
	Name   string `json:"name"`
	Seats  int    `json:"seats"`
}
