package reconciler

import "github.com/pribylovaa/go-recipe-client/internal/models"

// Thread — двухуровневая арена комментариев поста: упорядоченные корни,
// у каждого корня — упорядоченные прямые ответы. Строится заново чистой
// функцией BuildThread при каждом структурном изменении (загрузка,
// добавление, правка, удаление) вместо точечной хирургии дерева —
// корректность важнее микроэффективности, списки маленькие (десятки,
// редко сотни записей).
type Thread struct {
	Roots []ThreadComment
}

// ThreadComment — корневой комментарий с производными полями ответов.
// ReplyCount/ReplyIDs/Replies — только прямые дети; глубже одного
// уровня дерево не собирается.
type ThreadComment struct {
	models.Comment

	ReplyCount int
	ReplyIDs   []string
	Replies    []models.Comment
}

// BuildThread строит дерево из плоского списка, как его отдаёт сервер.
//
// Правила:
//   - корни — записи с пустым parentCommentId, исходный порядок сохраняется;
//   - ответы — прямые дети корня, порядок сохраняется; глубже не рекурсируем
//     (ответ на ответ в дереве не всплывает);
//   - ответ, чей parentCommentId не найден среди загруженных записей,
//     исключается из всех списков ответов: он существует в плоском наборе,
//     но не рендерится. Это защитная политика: «чинить» таких сирот,
//     поднимая их в корни, нельзя — это маскировало бы проблемы целостности
//     данных выше по течению.
//
// Дважды построенное дерево от одного списка идентично (функция чистая).
func BuildThread(flat []models.Comment) Thread {
	if len(flat) == 0 {
		return Thread{}
	}

	var roots []ThreadComment
	for _, c := range flat {
		if c.IsReply() {
			continue
		}

		root := ThreadComment{Comment: c}
		for _, r := range flat {
			if r.ParentCommentID != c.ID {
				continue
			}

			root.Replies = append(root.Replies, r)
			root.ReplyIDs = append(root.ReplyIDs, r.ID)
		}

		root.ReplyCount = len(root.Replies)
		roots = append(roots, root)
	}

	return Thread{Roots: roots}
}
