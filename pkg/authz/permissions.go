package authz

// Permission is an atomic named capability checked by the gate.
// Permissions are stateless: defined once, never mutated.
type Permission string

const (
	// Rooms & membership
	PermRoomRead       Permission = "room.read"
	PermRoomUpdate     Permission = "room.update"
	PermRoomDelete     Permission = "room.delete"
	PermRoomInvite     Permission = "room.invite"
	PermRoomKick       Permission = "room.kick"
	PermRoomRestore    Permission = "room.restore"
	PermRoomDeleteHard Permission = "room.delete_hard"
	PermPurge          Permission = "purge"

	// Boards & structure
	PermBoardRead    Permission = "board.read"
	PermBoardCreate  Permission = "board.create"
	PermBoardUpdate  Permission = "board.update"
	PermBoardDelete  Permission = "board.delete"
	PermBoardRestore Permission = "board.restore"

	PermColumnCreate Permission = "column.create"
	PermColumnUpdate Permission = "column.update"
	PermColumnDelete Permission = "column.delete"

	PermLaneCreate Permission = "lane.create"
	PermLaneUpdate Permission = "lane.update"
	PermLaneDelete Permission = "lane.delete"

	// Cards
	PermCardRead    Permission = "card.read"
	PermCardCreate  Permission = "card.create"
	PermCardUpdate  Permission = "card.update"
	PermCardDelete  Permission = "card.delete"
	PermCardRestore Permission = "card.restore"

	// Comments
	PermCommentCreate Permission = "comment.create"
	PermCommentUpdate Permission = "comment.update"
	PermCommentDelete Permission = "comment.delete"

	// Labels & attachments
	PermLabelManage      Permission = "label.manage"
	PermAttachmentAdd    Permission = "attachment.add"
	PermAttachmentDelete Permission = "attachment.delete"
)
