package service

import (
	"context"
	"log"
)

// dispatch 將已驗證的客戶端指令路由到對應的服務，
// 錯誤以結構化的 error 事件回報給原連線
func (s *Services) dispatch(client *Client, cmd *Inbound) {
	ctx := context.Background()

	switch cmd.Type {
	case InboundJoinPool:
		community, err := s.PoolService.Join(ctx, client.UserID)
		if err != nil {
			s.RoomGateway.sendToClient(client, NewErrorEvent(err))
			return
		}
		s.RoomGateway.sendToClient(client, NewJoinedEvent(community))

	case InboundLeavePool:
		if err := s.PoolService.Leave(ctx, client.UserID); err != nil {
			s.RoomGateway.sendToClient(client, NewErrorEvent(err))
		}

	case InboundSendMessage:
		if err := s.RoomGateway.RelayMessage(client.UserID, cmd.Content); err != nil {
			s.RoomGateway.sendToClient(client, NewErrorEvent(err))
		}

	case InboundCastVote:
		sessionID, ok := s.RoomGateway.RoomOf(client.UserID)
		if !ok {
			s.RoomGateway.sendToClient(client, NewErrorEvent(ErrSessionNotFound))
			return
		}
		if err := s.VoteService.Cast(ctx, sessionID, client.UserID, *cmd.Consent); err != nil {
			s.RoomGateway.sendToClient(client, NewErrorEvent(err))
		}

	default:
		// Validate 已攔下未知類型，到這裡表示遺漏了分支
		log.Printf("dispatch: unhandled command type %q", cmd.Type)
	}
}
